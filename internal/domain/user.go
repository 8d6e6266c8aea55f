package domain

import "time"

// User es el registro de identidad persistido en el credential store.
type User struct {
	ID             string    `json:"id"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	EmailAddress   string    `json:"emailAddress"`
	Username       string    `json:"username"`
	PasswordHash   string    `json:"-"`
	PhoneNumber    *string   `json:"phoneNumber,omitempty"`
	Occupation     *string   `json:"occupation,omitempty"`
	Bio            *string   `json:"bio,omitempty"`
	Status         *string   `json:"status,omitempty"`
	SecondaryEmail *string   `json:"secondaryEmail,omitempty"`
	ProfilePhoto   *string   `json:"profilePhoto,omitempty"`
	IsDeleted      bool      `json:"-"`
	IsDeactivated  bool      `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// PublicProfile es lo unico que se devuelve tras un login exitoso.
type PublicProfile struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	EmailAddress string `json:"emailAddress"`
	Username     string `json:"username"`
}

// Profile es la vista del usuario autenticado sobre su propia cuenta.
type Profile struct {
	ID             string  `json:"id"`
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	EmailAddress   string  `json:"emailAddress"`
	Username       string  `json:"username"`
	PhoneNumber    *string `json:"phoneNumber"`
	Occupation     *string `json:"occupation"`
	Bio            *string `json:"bio"`
	Status         *string `json:"status"`
	SecondaryEmail *string `json:"secondaryEmail"`
	ProfilePhoto   *string `json:"profilePhoto"`
}

func (u User) Public() PublicProfile {
	return PublicProfile{
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		EmailAddress: u.EmailAddress,
		Username:     u.Username,
	}
}

func (u User) Profile() Profile {
	return Profile{
		ID:             u.ID,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		EmailAddress:   u.EmailAddress,
		Username:       u.Username,
		PhoneNumber:    u.PhoneNumber,
		Occupation:     u.Occupation,
		Bio:            u.Bio,
		Status:         u.Status,
		SecondaryEmail: u.SecondaryEmail,
		ProfilePhoto:   u.ProfilePhoto,
	}
}
