/*
go-usertrack implements the frame processing pipeline used by OpenNI/NITE
style depth sensor viewers: per-frame depth histogram equalization, user
segmentation colorizing, and the skeleton tracking lifecycle (user detection,
pose search, calibration, joint tracking).

The sensor middleware itself stays behind the Source and tracker.Capability
interfaces.  A simulated device (SimSource) is provided so the pipeline,
examples, and tests run without sensor hardware attached.

See example code and usage in the example subdirectory.
*/
package usertrack
