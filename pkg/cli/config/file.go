package config

// ApplyFile loads the TOML config file named by release.ConfigFile, if any,
// and fills settings that were not given on the command line.
func ApplyFile(release *Release, github *GitHub, slack *Slack) error {
	if release.ConfigFile == "" {
		return nil
	}

	f, err := loadFile(release.ConfigFile)
	if err != nil {
		return err
	}

	release.applyFile(f)
	github.applyFile(f)
	slack.applyFile(f)
	return nil
}
