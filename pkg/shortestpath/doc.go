// Package shortestpath runs single-source shortest-path searches over a
// static directed road network.
//
// Three drivers share one label model and one priority queue:
//
//   - Dijkstra settles nodes by realized cost.
//   - AStar orders by realized cost plus a straight-line estimate to the
//     destination, fixed when the label is created.
//   - Battery keeps a Pareto set of (cost, remaining range) labels per node
//     and resets the range on recharge arcs.
//
// Every call owns its label table and queue, so drivers may run
// concurrently on the same Network.
package shortestpath
