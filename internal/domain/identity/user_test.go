package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUser_DisplayName(t *testing.T) {
	assert.Equal(t, "Ana Quispe", User{FirstName: "Ana", LastName: "Quispe", Username: "aquispe"}.DisplayName())
	assert.Equal(t, "Ana", User{FirstName: " Ana ", Username: "aquispe"}.DisplayName())
	assert.Equal(t, "aquispe", User{Username: "aquispe"}.DisplayName())
}

func TestUser_Roles(t *testing.T) {
	u := User{Roles: []string{"ROLE_ADMIN"}}
	assert.True(t, u.HasRole(RoleAdmin))
	assert.True(t, u.IsAdmin())
	assert.False(t, u.HasRole(RoleClient))

	client := User{Roles: []string{"client"}}
	assert.True(t, client.HasRole(RoleClient))
	assert.False(t, client.IsAdmin())
}

func TestPerson_Names(t *testing.T) {
	p := Person{DocumentNumber: "12345678", FirstNames: "JUAN CARLOS", PaternalSurname: "PEREZ", MaternalSurname: "LOPEZ"}
	assert.Equal(t, "JUAN CARLOS PEREZ LOPEZ", p.FullName())
	assert.Equal(t, "PEREZ LOPEZ", p.LastName())
	assert.Equal(t, "JUAN", Person{FirstNames: "JUAN"}.FullName())
}

func TestSession_ClearCredentials(t *testing.T) {
	s := &Session{
		ID:                  "s1",
		Token:               "tok",
		RefreshToken:        "ref",
		CurrentUser:         &User{ID: "u1"},
		CurrentUserComplete: &User{ID: "u1"},
		OrganizationID:      "org1",
	}
	assert.True(t, s.HasCredentials())

	s.ClearCredentials()

	assert.Equal(t, "s1", s.ID)
	assert.False(t, s.HasCredentials())
	assert.Empty(t, s.RefreshToken)
	assert.Nil(t, s.CurrentUser)
	assert.Nil(t, s.CurrentUserComplete)
	assert.Empty(t, s.OrganizationID)
}

func TestSession_IsExpired(t *testing.T) {
	now := time.Now()
	assert.False(t, (&Session{}).IsExpired(now))
	assert.True(t, (&Session{ExpiresAt: now.Add(-time.Minute)}).IsExpired(now))
	assert.False(t, (&Session{ExpiresAt: now.Add(time.Minute)}).IsExpired(now))
}
