package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseS3URL(t *testing.T) {
	tests := []struct {
		raw    string
		bucket string
		key    string
		ok     bool
	}{
		{"s3://recipe-images/chili/small.jpg", "recipe-images", "chili/small.jpg", true},
		{"s3://recipe-images/a.png", "recipe-images", "a.png", true},
		{"s3://recipe-images/", "", "", false},
		{"s3:///a.png", "", "", false},
		{"https://img.example.com/a.png", "", "", false},
		{"not a url at all", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			bucket, key, ok := ParseS3URL(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestCacheName(t *testing.T) {
	a := CacheName("images", "chili/small.jpg")
	b := CacheName("images", "stew/small.jpg")

	assert.True(t, strings.HasSuffix(a, "-small.jpg"))
	assert.NotEqual(t, a, b, "same base name in different folders must not collide")
	assert.Equal(t, a, CacheName("images", "chili/small.jpg"))
	assert.NotContains(t, a, "/")
}
