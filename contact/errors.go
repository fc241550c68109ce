package contact

import "errors"

var errNegativeParams = errors.New("contact: negative penalty constant")
