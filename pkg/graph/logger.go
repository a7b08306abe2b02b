package graph

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "graph")
