package termux_installer

import (
	"errors"
	"fmt"

	rice "github.com/GeertJohan/go.rice"
)

var resourcesBox *rice.Box

// openBoxes opens the resource box. For go.rice's 'append' mode to work, all calls to
// FindBox() have to be with a literal string parameter.
func openBoxes() (err error) {
	if resourcesBox != nil {
		return nil
	}
	resourcesBox, err = rice.FindBox("resources")
	return err
}

// GetResource returns the content of the named file in the resources box.
func GetResource(name string) (string, error) {
	if resourcesBox == nil {
		if err := openBoxes(); err != nil {
			return "", err
		}
	}
	text, err := resourcesBox.String(name)
	if err != nil {
		return "", errors.New(fmt.Sprint(name, " not found."))
	}
	return text, nil
}

// MustGetResource is GetResource, but panics if the resource is missing. Only use it
// for files that ship with the installer.
func MustGetResource(name string) string {
	text, err := GetResource(name)
	if err != nil {
		panic(err)
	}
	return text
}
