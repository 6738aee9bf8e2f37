package inject

import "github.com/modbotics/brain/imu"

// IMU is an injected IMU.
type IMU struct {
	imu.IMU
	YawAngleFunc func() float64
}

// YawAngle calls the injected YawAngle or the real version.
func (i *IMU) YawAngle() float64 {
	if i.YawAngleFunc == nil {
		return i.IMU.YawAngle()
	}
	return i.YawAngleFunc()
}
