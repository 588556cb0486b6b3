package io

import (
	"errors"

	"github.com/ezrec/mipssim/translate"
)

var f = translate.From

var (
	// Tape errors
	ErrNoInput  = errors.New(f("tape has no input"))
	ErrNoOutput = errors.New(f("tape has no output"))
)
