// Package models holds the report types the command line tool renders
package models
