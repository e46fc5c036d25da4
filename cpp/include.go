package cpp

import (
	"fmt"
	"os"
	"path/filepath"
)

// IncludeSearcher resolves #include directives to files. The files are
// located but never entered.
type IncludeSearcher interface {
	//IncludeQuote is invoked when the preprocessor
	//encounters an include of the form #include "foo.h".
	//returns the full path of the file and the directory it was found in.
	IncludeQuote(requestingFile, headerPath string) (string, string, error)
	//IncludeAngled is invoked when the preprocessor
	//encounters an include of the form #include <foo.h>.
	//returns the full path of the file and the directory it was found in.
	IncludeAngled(requestingFile, headerPath string) (string, string, error)
}

type StandardIncludeSearcher struct {
	//Priority order list of paths to search for headers
	systemHeadersPath []string
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (is *StandardIncludeSearcher) IncludeQuote(requestingFile, headerPath string) (string, string, error) {
	dir := filepath.Dir(requestingFile)
	path := filepath.Join(dir, headerPath)
	exists, err := fileExists(path)
	if err != nil {
		return "", "", err
	}
	if !exists {
		return is.IncludeAngled(requestingFile, headerPath)
	}
	return path, dir, nil
}

func (is *StandardIncludeSearcher) IncludeAngled(requestingFile, headerPath string) (string, string, error) {
	for _, dir := range is.systemHeadersPath {
		path := filepath.Join(dir, headerPath)
		exists, err := fileExists(path)
		if err != nil {
			return "", "", err
		}
		if exists {
			return path, dir, nil
		}
	}
	return "", "", fmt.Errorf("header %s not found", headerPath)
}

// NewStandardIncludeSearcher searches the given directories in order.
func NewStandardIncludeSearcher(includePaths []string) IncludeSearcher {
	ret := &StandardIncludeSearcher{}
	ret.systemHeadersPath = includePaths
	return ret
}
