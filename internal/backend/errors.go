package backend

import "errors"

var ErrInvalidCredentials = errors.New("invalid credentials")
