package input

import (
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "utils.input")
