package model

import "time"

// UserCredential is the local account of the shop owner.
//
// Whether the user is logged in is not part of this record; session state
// lives in its own table.
type UserCredential struct {
	Username  string    `json:"username"`
	PINHash   string    `json:"pin_hash"`
	StoreName string    `json:"store_name"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (UserCredential) Collection() Collection { return CollectionUsers }

func (u UserCredential) Key() string { return u.Username }

// UserProfile is the part of a UserCredential that leaves the device.
type UserProfile struct {
	Username  string    `json:"username"`
	StoreName string    `json:"store_name"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile strips the PIN hash.
func (u UserCredential) Profile() UserProfile {
	return UserProfile{
		Username:  u.Username,
		StoreName: u.StoreName,
		Address:   u.Address,
		Phone:     u.Phone,
		CreatedAt: u.CreatedAt,
	}
}
