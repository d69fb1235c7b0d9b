// Package stamper reads build info files and stamps their
// values into template globals. Info files hold one
// "KEY VALUE" pair per line; string globals may then refer to
// any key as a single-brace {KEY} placeholder.
package stamper
