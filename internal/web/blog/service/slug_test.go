package service

import (
	"math/rand"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		title, want string
	}{
		{"Hello World!!", "hello-world"},
		{"Hello, World", "hello-world"},
		{"  --Go   1.25--  ", "go-1-25"},
		{"already-a-slug", "already-a-slug"},
		{"Ünïcode", "n-code"},
		{"!!!", ""},
		{"", ""},
		{"中文标题", ""},
	}
	for _, c := range cases {
		t.Run(c.title, func(t *testing.T) {
			require.Equal(t, c.want, Slugify(c.title))
		})
	}
}

func TestSlugifyShape(t *testing.T) {
	shape := regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	alphabet := []rune("aZ09 -_!?.,/\\é中\t")
	r := rand.New(rand.NewSource(1))

	for i := 0; i < 1000; i++ {
		title := make([]rune, r.Intn(30))
		for j := range title {
			title[j] = alphabet[r.Intn(len(alphabet))]
		}

		slug := Slugify(string(title))
		if slug == "" {
			continue
		}
		require.Regexp(t, shape, slug, "title %q", string(title))
		require.Equal(t, slug, Slugify(slug), "slugify must be idempotent")
	}
}
