package service_test

import "os"

func readFile(path string) (string, error) {
	b, err := os.ReadFile(path) //nolint:gosec // test temp dir
	return string(b), err
}
