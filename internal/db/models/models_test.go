package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestUserPublic_StripsCredential(t *testing.T) {
	u := User{
		ID:           "u-1",
		Email:        "a@example.com",
		PasswordHash: "$2a$12$secret",
		Status:       StatusActive,
	}

	pub := u.Public()
	if pub.Email != u.Email || pub.ID != u.ID {
		t.Errorf("Public() lost identity fields: %+v", pub)
	}

	raw, err := json.Marshal(pub)
	if err != nil {
		t.Fatalf("marshal public user: %v", err)
	}
	if strings.Contains(string(raw), "secret") {
		t.Errorf("serialized public user leaks the password hash: %s", raw)
	}
}

func TestInviteRedeemable(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name   string
		invite Invite
		want   bool
	}{
		{"pending and unexpired", Invite{Status: InviteStatusPending, ExpiresAt: now.Add(time.Hour)}, true},
		{"pending but expired", Invite{Status: InviteStatusPending, ExpiresAt: now.Add(-time.Hour)}, false},
		{"already accepted", Invite{Status: InviteStatusAccepted, ExpiresAt: now.Add(time.Hour)}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.invite.Redeemable(now); got != tc.want {
				t.Errorf("Redeemable() = %v, want %v", got, tc.want)
			}
		})
	}
}
