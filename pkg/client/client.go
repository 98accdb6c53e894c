// Package client is the consumer side of the langswap API: a thin REST
// client plus view models that cache collections, filter them locally, and
// invalidate cached state after mutations.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// User is the profile shape the API returns for friends and recommendations.
type User struct {
	ID               int64  `json:"id"`
	FullName         string `json:"full_name"`
	Bio              string `json:"bio"`
	NativeLanguage   string `json:"native_language"`
	LearningLanguage string `json:"learning_language"`
	Location         string `json:"location"`
	ProfilePic       string `json:"profile_pic"`
	IsOnboarded      bool   `json:"is_onboarded"`
}

type FriendRequest struct {
	ID         int64      `json:"id"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
	Sender     *User      `json:"sender,omitempty"`
	Recipient  *User      `json:"recipient,omitempty"`
}

// RequestsFeed mirrors the notifications endpoint: requests awaiting the
// user plus the user's own requests that were recently accepted.
type RequestsFeed struct {
	IncomingRequests []FriendRequest `json:"incoming_requests"`
	AcceptedRequests []FriendRequest `json:"accepted_requests"`
}

// APIError is a domain failure reported by the server. Transport failures
// (timeouts, refused connections) are returned as ordinary wrapped errors
// and must not be confused with these.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// SetToken sets the bearer token used on authenticated calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		if errBody.Error == "" {
			errBody.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: errBody.Error}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) RecommendedUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) Friends(ctx context.Context) ([]User, error) {
	var friends []User
	if err := c.do(ctx, http.MethodGet, "/users/friends", nil, &friends); err != nil {
		return nil, err
	}
	return friends, nil
}

func (c *Client) SendFriendRequest(ctx context.Context, userID int64) (*FriendRequest, error) {
	var req FriendRequest
	path := "/users/friend-request/" + strconv.FormatInt(userID, 10)
	if err := c.do(ctx, http.MethodPost, path, nil, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *Client) AcceptFriendRequest(ctx context.Context, requestID int64) error {
	path := "/users/friend-request/" + strconv.FormatInt(requestID, 10) + "/accept"
	return c.do(ctx, http.MethodPut, path, nil, nil)
}

func (c *Client) RejectFriendRequest(ctx context.Context, requestID int64) error {
	path := "/users/friend-request/" + strconv.FormatInt(requestID, 10) + "/reject"
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) FriendRequests(ctx context.Context) (*RequestsFeed, error) {
	var feed RequestsFeed
	if err := c.do(ctx, http.MethodGet, "/users/friend-requests", nil, &feed); err != nil {
		return nil, err
	}
	return &feed, nil
}

func (c *Client) OutgoingFriendRequests(ctx context.Context) ([]FriendRequest, error) {
	var reqs []FriendRequest
	if err := c.do(ctx, http.MethodGet, "/users/outgoing-friend-requests", nil, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (c *Client) RemoveFriend(ctx context.Context, friendID int64) error {
	path := "/users/friends/" + strconv.FormatInt(friendID, 10)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

type authResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Signup registers an account and stores the returned token on the client.
func (c *Client) Signup(ctx context.Context, email, password, fullName string) (*User, error) {
	var resp authResponse
	body := map[string]string{"email": email, "password": password, "full_name": fullName}
	if err := c.do(ctx, http.MethodPost, "/auth/signup", body, &resp); err != nil {
		return nil, err
	}
	c.token = resp.Token
	return &resp.User, nil
}

// Login authenticates and stores the returned token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var resp authResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return nil, err
	}
	c.token = resp.Token
	return &resp.User, nil
}

type OnboardingProfile struct {
	FullName         string `json:"full_name"`
	Bio              string `json:"bio"`
	NativeLanguage   string `json:"native_language"`
	LearningLanguage string `json:"learning_language"`
	Location         string `json:"location"`
	ProfilePic       string `json:"profile_pic,omitempty"`
}

func (c *Client) CompleteOnboarding(ctx context.Context, profile OnboardingProfile) (*User, error) {
	var resp struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/onboarding", profile, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var resp struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}
