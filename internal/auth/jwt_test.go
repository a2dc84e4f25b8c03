package auth

import (
	"testing"
	"time"
)

func TestIssueParse(t *testing.T) {
	token, exp, err := Issue("1MS21CS001", "alice", "alice@test.test", false, "smartattend", "secret", time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Error("expiry in the past")
	}

	claims, err := Parse(token, "secret", "smartattend")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if claims.USN != "1MS21CS001" || claims.Name != "alice" || claims.IsTeacher {
		t.Errorf("claims = %+v", claims)
	}
}

func TestParseRejects(t *testing.T) {
	token, _, err := Issue("1MS21CS001", "alice", "alice@test.test", false, "smartattend", "secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	expired, _, err := Issue("1MS21CS001", "alice", "alice@test.test", false, "smartattend", "secret", -time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		token  string
		key    string
		issuer string
	}{
		{name: "wrong key", token: token, key: "other", issuer: "smartattend"},
		{name: "issuer mismatch", token: token, key: "secret", issuer: "someone-else"},
		{name: "garbage", token: "not.a.token", key: "secret", issuer: "smartattend"},
		{name: "expired", token: expired, key: "secret", issuer: "smartattend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.token, tt.key, tt.issuer); err == nil {
				t.Error("Parse() expected error")
			}
		})
	}
}
