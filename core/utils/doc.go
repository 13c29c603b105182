// Package utils contains small, dependency-light helpers shared across features.
package utils
