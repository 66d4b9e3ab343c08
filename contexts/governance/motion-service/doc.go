// Package motionservice implements the motion workflow engine inside the
// governance context.
//
// The module owns the motion lifecycle state machine (draft through
// accepted/rejected/withdrawn/referred), validates every transition against
// the allowed-transition table and the actor's authority, keeps an audit
// history of applied transitions, and gates the voting decision on the state
// of the motion's poll.
package motionservice
