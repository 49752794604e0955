package models

// ConnectionRequest is a pending, one-directional interest expressed by
// FromUser toward the viewer. The client only ever holds pending requests;
// accepted or rejected ones are removed from the local list rather than
// transitioned in place.
type ConnectionRequest struct {
	ID       string `json:"_id"`
	FromUser User   `json:"fromUserId"`
}

// SignupRequest is the payload for POST /signup.
type SignupRequest struct {
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	EmailID   string   `json:"emailId"`
	Password  string   `json:"password"`
	Age       int      `json:"age"`
	Gender    Gender   `json:"gender"`
	About     string   `json:"about"`
	Skills    []string `json:"skills"`
}

// Validate checks the signup payload against the profile constraints.
func (r *SignupRequest) Validate() error {
	u := User{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Age:       r.Age,
		Gender:    r.Gender,
		About:     r.About,
		Skills:    r.Skills,
	}
	if err := u.Validate(); err != nil {
		return err
	}
	if r.EmailID == "" {
		return errEmailRequired
	}
	if len(r.Password) < 8 {
		return errWeakPassword
	}
	return nil
}

// ProfilePatch is a partial profile update for PATCH /profile/edit. Nil
// fields are omitted from the request body and left untouched by the
// server.
type ProfilePatch struct {
	FirstName *string   `json:"firstName,omitempty"`
	LastName  *string   `json:"lastName,omitempty"`
	Age       *int      `json:"age,omitempty"`
	Gender    *Gender   `json:"gender,omitempty"`
	PhotoURL  *string   `json:"photoUrl,omitempty"`
	About     *string   `json:"about,omitempty"`
	Skills    *[]string `json:"skills,omitempty"`
}

// IsEmpty reports whether the patch carries no changes.
func (p *ProfilePatch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Age == nil &&
		p.Gender == nil && p.PhotoURL == nil && p.About == nil && p.Skills == nil
}
