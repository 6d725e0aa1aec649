// Package inkwell holds the domain types shared by the blog server packages.
package inkwell

const Version = "v0.1.0"
