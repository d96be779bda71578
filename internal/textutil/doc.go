// Package textutil turns free-form recording titles into file name slugs.
package textutil
