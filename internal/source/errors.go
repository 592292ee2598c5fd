package source

import "github.com/rotisserie/eris"

func errEmpty(label, path string) error {
	return eris.Errorf("%s: file %s has no rows", label, path)
}
