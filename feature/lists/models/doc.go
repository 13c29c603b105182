// Package models defines the persisted list record and its partitions.
package models
