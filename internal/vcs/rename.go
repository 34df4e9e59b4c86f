package vcs

import "strings"

// ExpandRename expands a single VCS rename-notation path, such as
// "src/{old => new}/file.go", into its old and new forms:
// ("src/old/file.go", "src/new/file.go"). A path with no brace group is
// returned unchanged as a single-element slice.
//
// This is a hand-rolled scan rather than a regex: the brace group is
// recursive only syntactically (git emits at most one per rename entry),
// so a single left-to-right pass over the three segments (prefix, body,
// suffix) is enough.
func ExpandRename(path string) []string {
	open := strings.IndexByte(path, '{')
	if open < 0 {
		return []string{path}
	}
	close := strings.IndexByte(path[open:], '}')
	if close < 0 {
		return []string{path}
	}
	close += open

	prefix := path[:open]
	body := path[open+1 : close]
	suffix := path[close+1:]

	sep := strings.Index(body, " => ")
	if sep < 0 {
		return []string{path}
	}
	oldName := body[:sep]
	newName := body[sep+len(" => "):]

	return []string{prefix + oldName + suffix, prefix + newName + suffix}
}
