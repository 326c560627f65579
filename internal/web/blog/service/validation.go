package service

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/Laisky/laisky-blog-cms/internal/web/blog/dto"
	"github.com/Laisky/laisky-blog-cms/internal/web/blog/model"
)

const (
	invalidPostMessage    = "invalid blog data"
	invalidCommentMessage = "invalid comment data"
	invalidTopicMessage   = "invalid topic data"
	invalidUserMessage    = "invalid user data"

	minPostTitleLength   = 3
	maxPostTitleLength   = 200
	minPostExcerptLength = 10
	maxPostExcerptLength = 1000
	minPostContentLength = 50
	minPostAuthorLength  = 2
	maxPostAuthorLength  = 100
	// maxPostTagLength caps the length of each post tag.
	maxPostTagLength = 100
	// maxURLLength caps the length of image urls.
	maxURLLength = 2048

	minCommentNameLength    = 2
	maxCommentNameLength    = 100
	minCommentContentLength = 3
	maxCommentContentLength = 500
	// maxEmailLength caps the length of emails.
	maxEmailLength = 254

	minTopicNameLength        = 2
	maxTopicNameLength        = 100
	maxTopicDescriptionLength = 500
)

// fieldErrors collects one message per invalid field.
type fieldErrors map[string]string

func (f fieldErrors) add(field, format string, args ...any) {
	if _, ok := f[field]; ok {
		return
	}

	f[field] = fmt.Sprintf(format, args...)
}

func (f fieldErrors) err(message string) error {
	if len(f) == 0 {
		return nil
	}

	return model.NewValidationError(message, f)
}

// checkText trims input and checks its rune length against [minLen, maxLen].
// maxLen <= 0 means unbounded.
func (f fieldErrors) checkText(field, input string, minLen, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	f.checkLength(field, trimmed, minLen, maxLen)
	return trimmed
}

func (f fieldErrors) checkLength(field, value string, minLen, maxLen int) {
	if strings.ContainsRune(value, '\x00') {
		f.add(field, "%s contains invalid null byte", field)
		return
	}

	n := utf8.RuneCountInString(value)
	switch {
	case n < minLen && minLen == 1:
		f.add(field, "%s is required", field)
	case n < minLen:
		f.add(field, "%s must be at least %d characters", field, minLen)
	case maxLen > 0 && n > maxLen:
		f.add(field, "%s must be at most %d characters", field, maxLen)
	}
}

// checkList trims every item, drops empty ones and checks the rest.
// The result is never nil. Duplicates are kept.
func (f fieldErrors) checkList(field string, items []string, maxLen int) []string {
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		f.checkLength(field, item, 0, maxLen)
		cleaned = append(cleaned, item)
	}

	return cleaned
}

// validatePostInput returns a sanitized copy of in.
// The body is checked but kept byte for byte.
func validatePostInput(in *dto.PostInput) (*dto.PostInput, error) {
	if in == nil {
		return nil, model.NewValidationError(invalidPostMessage, map[string]string{"body": "request body is required"})
	}

	errs := fieldErrors{}
	out := &dto.PostInput{
		Title:      errs.checkText("title", in.Title, minPostTitleLength, maxPostTitleLength),
		Excerpt:    errs.checkText("excerpt", in.Excerpt, minPostExcerptLength, maxPostExcerptLength),
		Content:    in.Content,
		Author:     errs.checkText("author", in.Author, minPostAuthorLength, maxPostAuthorLength),
		Tags:       errs.checkList("tags", in.Tags, maxPostTagLength),
		CoverImage: errs.checkText("coverImage", in.CoverImage, 0, maxURLLength),
		Images:     errs.checkList("images", in.Images, maxURLLength),
		Featured:   in.Featured,
	}
	errs.checkLength("content", strings.TrimSpace(in.Content), minPostContentLength, 0)
	if _, ok := errs["title"]; !ok && Slugify(out.Title) == "" {
		errs.add("title", "title must contain at least one letter or digit")
	}

	if err := errs.err(invalidPostMessage); err != nil {
		return nil, err
	}

	return out, nil
}

// validatePostPatch returns a sanitized copy of p. Every field is optional
// but a present field obeys the same rules as on creation.
func validatePostPatch(p *dto.PostPatch) (*dto.PostPatch, error) {
	if p == nil {
		return nil, model.NewValidationError(invalidPostMessage, map[string]string{"body": "request body is required"})
	}

	errs := fieldErrors{}
	out := &dto.PostPatch{
		Content:  p.Content,
		Featured: p.Featured,
	}
	optional := func(field string, v *string, minLen, maxLen int) *string {
		if v == nil {
			return nil
		}

		trimmed := errs.checkText(field, *v, minLen, maxLen)
		return &trimmed
	}

	out.Title = optional("title", p.Title, minPostTitleLength, maxPostTitleLength)
	out.Excerpt = optional("excerpt", p.Excerpt, minPostExcerptLength, maxPostExcerptLength)
	out.Author = optional("author", p.Author, minPostAuthorLength, maxPostAuthorLength)
	out.CoverImage = optional("coverImage", p.CoverImage, 0, maxURLLength)
	if p.Content != nil {
		errs.checkLength("content", strings.TrimSpace(*p.Content), minPostContentLength, 0)
	}
	if p.Tags != nil {
		out.Tags = errs.checkList("tags", p.Tags, maxPostTagLength)
	}
	if p.Images != nil {
		out.Images = errs.checkList("images", p.Images, maxURLLength)
	}

	if err := errs.err(invalidPostMessage); err != nil {
		return nil, err
	}

	return out, nil
}

// checkEmail accepts a bare address only and returns it lower-cased.
func (f fieldErrors) checkEmail(field, raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		f.add(field, "%s is required", field)
		return ""
	}
	if len(trimmed) > maxEmailLength {
		f.add(field, "%s must be at most %d characters", field, maxEmailLength)
		return ""
	}

	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		f.add(field, "%s must be a valid email address", field)
		return ""
	}

	return strings.ToLower(addr.Address)
}

// validateCommentInput returns a sanitized copy of in.
func validateCommentInput(in *dto.CommentInput) (*dto.CommentInput, error) {
	if in == nil {
		return nil, model.NewValidationError(invalidCommentMessage, map[string]string{"body": "request body is required"})
	}

	errs := fieldErrors{}
	out := &dto.CommentInput{
		Blog:    errs.checkText("blog", in.Blog, 1, 0),
		Name:    errs.checkText("name", in.Name, minCommentNameLength, maxCommentNameLength),
		Email:   errs.checkEmail("email", in.Email),
		Content: errs.checkText("content", in.Content, minCommentContentLength, maxCommentContentLength),
	}

	if err := errs.err(invalidCommentMessage); err != nil {
		return nil, err
	}

	return out, nil
}

// validateTopicInput returns a sanitized copy of in.
func validateTopicInput(in *dto.TopicInput) (*dto.TopicInput, error) {
	if in == nil {
		return nil, model.NewValidationError(invalidTopicMessage, map[string]string{"body": "request body is required"})
	}

	errs := fieldErrors{}
	out := &dto.TopicInput{
		Name:        errs.checkText("name", in.Name, minTopicNameLength, maxTopicNameLength),
		Description: errs.checkText("description", in.Description, 0, maxTopicDescriptionLength),
	}
	if _, ok := errs["name"]; !ok && Slugify(out.Name) == "" {
		errs.add("name", "name must contain at least one letter or digit")
	}

	if err := errs.err(invalidTopicMessage); err != nil {
		return nil, err
	}

	return out, nil
}
