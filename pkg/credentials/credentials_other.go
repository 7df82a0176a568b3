//go:build !windows

package credentials

// ReadFromStore reports supported=false; callers fall back to the
// configuration file.
func (this *Credentials) ReadFromStore() (supported bool, err error) {
	return false, nil
}

func (this Credentials) WriteToStore() (supported bool, err error) {
	return false, nil
}
