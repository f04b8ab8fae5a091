package ami

// Credentials are the AWS overrides supplied on the command line.
type Credentials struct {
	Profile         string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// Env returns only the supplied keys. Absent keys are omitted rather than
// set empty, so packer falls back to the inherited environment for them.
func (c Credentials) Env() map[string]string {
	env := make(map[string]string, 4)
	for key, val := range map[string]string{
		"AWS_PROFILE":           c.Profile,
		"AWS_ACCESS_KEY_ID":     c.AccessKeyID,
		"AWS_SECRET_ACCESS_KEY": c.SecretAccessKey,
		"AWS_SESSION_TOKEN":     c.SessionToken,
	} {
		if val != "" {
			env[key] = val
		}
	}
	return env
}
