package domain

// User is a customer or support agent account.
type User struct {
	ID              int64
	Username        string
	Password        string
	Email           string
	PhoneNumber     *string
	IsAgent         bool
	DisplayName     string
	ProfilePhotoURL *string
}

// NewUser carries the registration fields accepted by the store.
type NewUser struct {
	Username    string
	Password    string
	Email       string
	DisplayName string
	PhoneNumber *string
}

// UserPatch lists the user fields that may change after creation.
// A nil field keeps its prior value; an empty PhoneNumber clears it.
type UserPatch struct {
	Password        *string
	Email           *string
	DisplayName     *string
	PhoneNumber     *string
	ProfilePhotoURL *string
}

// Apply merges the patch into u.
func (p UserPatch) Apply(u *User) {
	if p.Password != nil {
		u.Password = *p.Password
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.DisplayName != nil {
		u.DisplayName = *p.DisplayName
	}
	if p.PhoneNumber != nil {
		if *p.PhoneNumber == "" {
			u.PhoneNumber = nil
		} else {
			u.PhoneNumber = StringPtr(*p.PhoneNumber)
		}
	}
	if p.ProfilePhotoURL != nil {
		u.ProfilePhotoURL = StringPtr(*p.ProfilePhotoURL)
	}
}

// Clone returns a deep copy of u.
func (u User) Clone() User {
	if u.PhoneNumber != nil {
		u.PhoneNumber = StringPtr(*u.PhoneNumber)
	}
	if u.ProfilePhotoURL != nil {
		u.ProfilePhotoURL = StringPtr(*u.ProfilePhotoURL)
	}
	return u
}

// StringPtr returns a pointer to a copy of s.
func StringPtr(s string) *string {
	return &s
}
