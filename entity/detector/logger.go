package detector

import (
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "entity.detector")
