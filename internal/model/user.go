package model

// User represents a system user of any role.
type User struct {
	Base          `bson:",inline"`
	Name          string `json:"name" bson:"name"`
	Email         string `json:"email" bson:"email"`
	PasswordHash  string `json:"-" bson:"passwordHash"`
	Role          Role   `json:"role" bson:"role"`
	Age           int    `json:"age,omitempty" bson:"age,omitempty"`
	Gender        string `json:"gender,omitempty" bson:"gender,omitempty"`
	ContactNumber string `json:"contact_number,omitempty" bson:"contactNumber,omitempty"`
	BloodGroup    string `json:"blood_group,omitempty" bson:"bloodGroup,omitempty"`
	Address       string `json:"address,omitempty" bson:"address,omitempty"`
}

// PublicUser is the projection of a user safe to embed in populated reads.
type PublicUser struct {
	ID            string `json:"id" bson:"_id"`
	Name          string `json:"name" bson:"name"`
	Email         string `json:"email" bson:"email"`
	Role          Role   `json:"role" bson:"role"`
	Age           int    `json:"age,omitempty" bson:"age,omitempty"`
	Gender        string `json:"gender,omitempty" bson:"gender,omitempty"`
	ContactNumber string `json:"contact_number,omitempty" bson:"contactNumber,omitempty"`
	BloodGroup    string `json:"blood_group,omitempty" bson:"bloodGroup,omitempty"`
	Address       string `json:"address,omitempty" bson:"address,omitempty"`
}

// Public strips credential material from a user record.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:            u.ID.Hex(),
		Name:          u.Name,
		Email:         u.Email,
		Role:          u.Role,
		Age:           u.Age,
		Gender:        u.Gender,
		ContactNumber: u.ContactNumber,
		BloodGroup:    u.BloodGroup,
		Address:       u.Address,
	}
}

// UserFilters represents user search parameters
type UserFilters struct {
	Role         Role
	SearchTerm   string
	ExcludeAdmin bool
}
