package domain

import "time"

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Credentials struct {
	Username string `json:"username" validate:"required,min=3,max=32,alphanum"`
	// bcrypt only hashes the first 72 bytes.
	Password string `json:"password" validate:"required,min=8,max=72,maxbytes=72"`
}
