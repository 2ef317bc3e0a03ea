package domain

import "testing"

func TestUser_Validate(t *testing.T) {
	tests := []struct {
		name    string
		user    User
		wantErr bool
	}{
		{"valid", User{YandexID: "y1", Username: "alice", PhoneNumber: "+7000"}, false},
		{"missing yandex id", User{Username: "alice", PhoneNumber: "+7000"}, true},
		{"missing username", User{YandexID: "y1", PhoneNumber: "+7000"}, true},
		{"missing phone", User{YandexID: "y1", Username: "alice"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.user.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPatch_Apply(t *testing.T) {
	name := "bob"
	super := true
	u := &User{Username: "alice", PhoneNumber: "+7000"}
	p := Patch{Username: &name, IsSuperuser: &super}
	if p.Empty() {
		t.Fatal("patch should not be empty")
	}
	p.Apply(u)
	if u.Username != "bob" || u.PhoneNumber != "+7000" || !u.IsSuperuser {
		t.Errorf("after Apply: %+v", u)
	}
	if !(Patch{}).Empty() {
		t.Error("zero patch should be empty")
	}
}
