// Package deps checks that the external programs panograb shells out to are
// installed.
package deps
