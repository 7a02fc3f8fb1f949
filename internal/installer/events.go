// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package installer

// InstallerEvents is a set of callbacks reporting the progress of an
// install. Download, verify and unpack are the three coarse phases a
// progress UI is expected to treat as roughly equal. Any callback may be
// nil, in which case the event is ignored.
type InstallerEvents struct {
	// TargetDirPrepared is called once the install directory exists.
	TargetDirPrepared func(dir string)

	// DownloadBegin and DownloadComplete bracket the artifact transfer.
	DownloadBegin    func(url string)
	DownloadComplete func(archivePath string)

	// VerifyBegin and VerifyComplete bracket checksum verification.
	VerifyBegin    func(archivePath string)
	VerifyComplete func(archivePath string)

	// UnpackBegin and UnpackComplete bracket archive extraction;
	// UnpackComplete receives the path of the new active binary.
	UnpackBegin    func(archivePath string)
	UnpackComplete func(binPath string)
}

func (e InstallerEvents) targetDirPrepared(dir string) {
	if e.TargetDirPrepared != nil {
		e.TargetDirPrepared(dir)
	}
}

func (e InstallerEvents) downloadBegin(url string) {
	if e.DownloadBegin != nil {
		e.DownloadBegin(url)
	}
}

func (e InstallerEvents) downloadComplete(archivePath string) {
	if e.DownloadComplete != nil {
		e.DownloadComplete(archivePath)
	}
}

func (e InstallerEvents) verifyBegin(archivePath string) {
	if e.VerifyBegin != nil {
		e.VerifyBegin(archivePath)
	}
}

func (e InstallerEvents) verifyComplete(archivePath string) {
	if e.VerifyComplete != nil {
		e.VerifyComplete(archivePath)
	}
}

func (e InstallerEvents) unpackBegin(archivePath string) {
	if e.UnpackBegin != nil {
		e.UnpackBegin(archivePath)
	}
}

func (e InstallerEvents) unpackComplete(binPath string) {
	if e.UnpackComplete != nil {
		e.UnpackComplete(binPath)
	}
}
