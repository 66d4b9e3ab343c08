package authority

import "testing"

func TestLevelOrdering(t *testing.T) {
	if !Owner.AtLeast(Admin) {
		t.Fatalf("owner should satisfy admin checks")
	}
	if !Admin.AtLeast(Admin) {
		t.Fatalf("admin should satisfy admin checks")
	}
	if Member.AtLeast(Admin) {
		t.Fatalf("member must not satisfy admin checks")
	}
	if Viewer.AtLeast(Member) {
		t.Fatalf("viewer must not satisfy member checks")
	}
}

func TestFromParticipantRole(t *testing.T) {
	cases := map[string]Level{
		"admin":     Admin,
		"moderator": Admin,
		"member":    Member,
		"guest":     Viewer,
		"observer":  Viewer,
		"":          Viewer,
		"banana":    Viewer,
	}
	for role, want := range cases {
		if got := FromParticipantRole(role); got != want {
			t.Fatalf("role %q: got %v want %v", role, got, want)
		}
	}
}
