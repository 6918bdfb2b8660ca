// Package analyze extracts point-cloud statistics from a triangle soup:
// the bounding box, height layers, dense XY vertex clusters (standoffs) and
// the footprint of vertices near a height level.
//
// Every pass is a pure function of its inputs. Passes never modify the mesh
// and return values that hold no reference back to it. An empty result
// means "searched and found nothing"; only malformed inputs return errors.
package analyze
