// Package cli is the interactive journal client.
//
// Each input line is parsed by a fresh cobra command tree. Commands that
// render a page carry a route; before one runs, the session decides whether
// the route may be visited. Anonymous visitors of private routes are sent to
// login, and signed-in visitors of login or signup land on the home list.
//
// Commands:
//
//	home | list | l            list all posts
//	view <id|#n>               show a post
//	login [--github]           sign in
//	signup                     create an account
//	reset-password [--code]    reset a forgotten password
//	logout                     sign out
//	new-post                   write a post, optionally with an image
//	edit-post <id|#n>          edit one of your posts
//	delete-post <id|#n>        delete one of your posts
//	profile [user-id]          show a profile and its posts
//	profile-settings [name|photo|delete]
//	exit | quit
//
// "#n" refers to the n-th post of the last list shown.
package cli
