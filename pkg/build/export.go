package build

// DefaultExportFormat is used when no format was configured.
const DefaultExportFormat = "IPA"

// ExportOptions holds the attributes of an xcodebuild -exportArchive run.
type ExportOptions struct {
	ArchivePath string

	// Format is nil when unset (defaults to IPA). A non-nil empty string
	// omits -exportFormat entirely.
	Format *string

	ExportPath                  string
	ProvisioningProfile         string
	SigningIdentity             string
	InstallerIdentity           string
	WithOriginalSigningIdentity bool
	OptionsPlist                string
}

// ExportFormat returns the effective format and whether the flag is emitted.
func (o ExportOptions) ExportFormat() (string, bool) {
	if o.Format == nil {
		return DefaultExportFormat, true
	}
	return *o.Format, *o.Format != ""
}

// ExportArgs assembles the export option list. An options plist replaces the
// format and every discrete identity flag.
func ExportArgs(o ExportOptions) []string {
	var args []string

	if o.OptionsPlist != "" {
		args = append(args, "-exportOptionsPlist", o.OptionsPlist)
		if o.ArchivePath != "" {
			args = append(args, "-archivePath", o.ArchivePath)
		}
		if o.ExportPath != "" {
			args = append(args, "-exportPath", o.ExportPath)
		}
		return args
	}

	if o.ArchivePath != "" {
		args = append(args, "-archivePath", o.ArchivePath)
	}
	if format, ok := o.ExportFormat(); ok {
		args = append(args, "-exportFormat", format)
	}
	if o.ExportPath != "" {
		args = append(args, "-exportPath", o.ExportPath)
	}
	if o.ProvisioningProfile != "" {
		args = append(args, "-exportProvisioningProfile", o.ProvisioningProfile)
	}
	if o.SigningIdentity != "" {
		args = append(args, "-exportSigningIdentity", o.SigningIdentity)
	}
	if o.InstallerIdentity != "" {
		args = append(args, "-exportInstallerIdentity", o.InstallerIdentity)
	}
	if o.WithOriginalSigningIdentity {
		args = append(args, "-exportWithOriginalSigningIdentity")
	}
	return args
}
