package ami

import (
	"fmt"
	"os"
	"strings"
)

// imageTagToken is replaced with the final image tag in the compose template.
const imageTagToken = "${IMAGE_TAG}"

// RenderCompose writes the docker-compose file baked into the AMI.
func RenderCompose(templatePath, outputPath, imageTag string) error {
	tmpl, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("reading compose template: %w", err)
	}
	out := strings.ReplaceAll(string(tmpl), imageTagToken, imageTag)
	if err := os.WriteFile(outputPath, []byte(out), 0o644); err != nil {
		return fmt.Errorf("writing compose file: %w", err)
	}
	return nil
}
