package lane

import (
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "entity.lane")
