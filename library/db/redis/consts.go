package redis

const (
	keyPrefix = "laisky-blog-cms/"

	// KeyPrefixLikes is the key prefix for per-post like sets.
	KeyPrefixLikes = keyPrefix + "likes/"
)
