package dto

// TopicInput create topic request
type TopicInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// SignIn identity asserted by an auth provider
type SignIn struct {
	Email    string
	Name     string
	Image    string
	Provider string
}
