// Package imu exposes the inertial readings the control core consumes.
package imu

// An IMU reports the robot's orientation. Implementations sample the
// hardware asynchronously; YawAngle returns the latest value without
// blocking.
type IMU interface {
	// YawAngle returns the yaw in degrees. The angle accumulates across
	// full rotations rather than wrapping at 360.
	YawAngle() float64
}
