package build

import "strings"

// ImageTag joins a repository name and a version into "name:version".
// Characters docker rejects in tags are replaced.
func ImageTag(name, version string) string {
	if version == "" {
		version = "latest"
	}
	return name + ":" + sanitizeTag(version)
}

// RegistryRef prefixes tag with a registry host, trimming stray slashes.
func RegistryRef(registry, tag string) string {
	registry = strings.TrimRight(registry, "/")
	if registry == "" {
		return tag
	}
	return registry + "/" + tag
}

// sanitizeTag replaces characters not allowed in Docker tags.
func sanitizeTag(s string) string {
	r := strings.NewReplacer(
		"/", "-",
		" ", "-",
		"+", "-",
	)
	return r.Replace(s)
}
