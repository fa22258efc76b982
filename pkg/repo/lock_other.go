//go:build !unix

package repo

import "os"

func tryLockFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, errLockBusy
		}
		return nil, err
	}
	return f, nil
}

func unlockFile(f *os.File, path string) error {
	err := f.Close()
	if rerr := os.Remove(path); err == nil && !os.IsNotExist(rerr) {
		err = rerr
	}
	return err
}
