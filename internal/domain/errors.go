package domain

import "errors"

// ErrConfigurationMissing marks a session where one or both tool paths are unresolved.
var ErrConfigurationMissing = errors.New("toolchain configuration missing")

// ErrPreconditionUnmet is returned when a render is triggered without a directory and document.
var ErrPreconditionUnmet = errors.New("working directory and document are required")
