package routing

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "routing")
