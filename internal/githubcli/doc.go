// Package githubcli wraps the GitHub CLI with typed issue-import operations.
//
// The client shells out through execshell and exposes the narrow capability
// set the importer needs: repository resolution, label and milestone
// management, issue creation, issue closing, and Projects v2 item addition.
package githubcli
