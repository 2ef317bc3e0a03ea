package engine

import (
	"context"
	"testing"
)

func TestOPAAuthorizer_HealthCheck(t *testing.T) {
	ctx := context.Background()
	a, err := NewOPAAuthorizer(ctx, "")
	if err != nil {
		t.Fatalf("NewOPAAuthorizer: %v", err)
	}
	if err := a.HealthCheck(ctx); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestOPAAuthorizer_DefaultPolicy(t *testing.T) {
	ctx := context.Background()
	a, err := NewOPAAuthorizer(ctx, "")
	if err != nil {
		t.Fatalf("NewOPAAuthorizer: %v", err)
	}
	self := Actor{ID: 7}
	super := Actor{ID: 1, IsSuperuser: true}

	tests := []struct {
		name string
		req  Request
		want bool
	}{
		{"self read", Request{Actor: self, Action: ActionRead, TargetID: 7}, true},
		{"self update", Request{Actor: self, Action: ActionUpdate, TargetID: 7}, true},
		{"self delete", Request{Actor: self, Action: ActionDelete, TargetID: 7}, true},
		{"self grants superuser", Request{Actor: self, Action: ActionUpdate, TargetID: 7, ChangesSuperuser: true}, false},
		{"other read", Request{Actor: self, Action: ActionRead, TargetID: 8}, false},
		{"other delete", Request{Actor: self, Action: ActionDelete, TargetID: 8}, false},
		{"superuser read other", Request{Actor: super, Action: ActionRead, TargetID: 8}, true},
		{"superuser grants superuser", Request{Actor: super, Action: ActionUpdate, TargetID: 8, ChangesSuperuser: true}, true},
		{"superuser delete other", Request{Actor: super, Action: ActionDelete, TargetID: 8}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.Allow(ctx, tt.req)
			if err != nil {
				t.Fatalf("Allow: %v", err)
			}
			if got != tt.want {
				t.Errorf("Allow = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOPAAuthorizer_CustomPolicy(t *testing.T) {
	ctx := context.Background()
	policy := `package soundvault.users

default allow := false

allow if input.action == "read"
`
	a, err := NewOPAAuthorizer(ctx, policy)
	if err != nil {
		t.Fatalf("NewOPAAuthorizer: %v", err)
	}
	if ok, _ := a.Allow(ctx, Request{Actor: Actor{ID: 1}, Action: ActionRead, TargetID: 2}); !ok {
		t.Error("custom policy should allow read")
	}
	if ok, _ := a.Allow(ctx, Request{Actor: Actor{ID: 1, IsSuperuser: true}, Action: ActionDelete, TargetID: 2}); ok {
		t.Error("custom policy should deny delete")
	}
}

func TestOPAAuthorizer_InvalidPolicy(t *testing.T) {
	if _, err := NewOPAAuthorizer(context.Background(), "package broken\nallow if {"); err == nil {
		t.Fatal("NewOPAAuthorizer with invalid policy should fail")
	}
}
