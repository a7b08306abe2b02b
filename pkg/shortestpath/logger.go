package shortestpath

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "shortestpath")
