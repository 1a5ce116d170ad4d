package mod

import "errors"

var (
	ErrUnknownRefKind      = errors.New("unknown reference type")
	ErrUnknownDownloadType = errors.New("unknown download type")
	ErrUnknownInstallType  = errors.New("unknown install type")
	ErrNoDownloads         = errors.New("no downloads available")
)
