package fake

import (
	"sync"

	"github.com/modbotics/brain/imu"
)

var _ imu.IMU = (*IMU)(nil)

// IMU is a settable in-memory IMU.
type IMU struct {
	mu  sync.Mutex
	yaw float64
}

// NewIMU returns an IMU reporting zero yaw.
func NewIMU() *IMU {
	return &IMU{}
}

// YawAngle returns the last set yaw.
func (i *IMU) YawAngle() float64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.yaw
}

// SetYawAngle sets the yaw the IMU reports.
func (i *IMU) SetYawAngle(v float64) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.yaw = v
}
