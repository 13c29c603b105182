// Package models defines the user directory entry.
package models
