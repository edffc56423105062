// Package cmd implements the libbuild command line tool.
package cmd
