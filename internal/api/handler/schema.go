package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// --- Auth ---

type registerRequest struct {
	Username    string `json:"username"    validate:"required,max=50"`
	Password    string `json:"password"    validate:"required,max=72"`
	DisplayName string `json:"displayName" validate:"max=100"`
}

type registerResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token       string `json:"token"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

// --- Posts ---

type createPostRequest struct {
	Title   string `json:"title"   validate:"required,notblank,max=200"`
	Content string `json:"content" validate:"required,notblank,max=2000"`
}

// postResponse is the rendered form of a post. Every text field is
// HTML-escaped by toPostResponse.
type postResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	AuthorName string    `json:"authorName"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type dataResponse struct {
	CurrentUser string   `json:"currentUser"`
	AllUsers    []string `json:"allUsers"`
}
