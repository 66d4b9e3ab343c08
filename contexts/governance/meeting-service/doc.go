// Package meetingservice owns meeting sessions for the governance context:
// scheduling and lifecycle, the participant roster with voting weights and
// attendance, quorum evaluation, and the ordered agenda that drives a live
// session. Motions and polls reference meetings owned here.
package meetingservice
