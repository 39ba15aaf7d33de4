package helpers

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"testing"
)

func randInt(max int) int {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(max)))
	return int(n.Int64())
}

// GeneratePassword generates a 10 character password with a capital and special char
func GeneratePassword() string {
	const (
		lower   = "abcdefghijklmnopqrstuvwxyz"
		upper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
		special = "!@#$%^&*"
		numbers = "0123456789"
		all     = lower + upper + special + numbers
	)

	password := make([]byte, 10)
	password[0] = upper[randInt(len(upper))]
	password[1] = special[randInt(len(special))]
	password[2] = numbers[randInt(len(numbers))]

	for i := 3; i < 10; i++ {
		password[i] = all[randInt(len(all))]
	}

	for i := range password {
		j := randInt(len(password))
		password[i], password[j] = password[j], password[i]
	}

	return string(password)
}

// Account is a signed up user and its session token
type Account struct {
	Email    string
	Password string
	Token    string
}

// SignupAccount creates an account over HTTP and returns its session token
func SignupAccount(t *testing.T, baseURL, username string) Account {
	t.Helper()

	account := Account{
		Email:    username + "@example.com",
		Password: GeneratePassword(),
	}
	payload, err := json.Marshal(map[string]string{
		"email":    account.Email,
		"username": username,
		"password": account.Password,
	})
	if err != nil {
		t.Fatalf("Failed to marshal signup payload: %v", err)
	}

	resp, err := http.Post(baseURL+"/api/user/signup", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("Signup request failed: %v", err)
	}
	AssertStatus(t, resp, http.StatusCreated)

	var body struct {
		Token string `json:"token"`
	}
	ParseJSON(t, resp, &body)
	if body.Token == "" {
		t.Fatal("Signup returned no token")
	}
	account.Token = body.Token
	return account
}

// AuthRequest sends a JSON request with the account's bearer token
func AuthRequest(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	return resp
}
