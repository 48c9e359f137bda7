package detector

import (
	"fmt"

	"github.com/tsinghua-fib-lab/evpriority-sim-oss/entity"
)

// Detector 断面检测器
// 功能：固定在车道某一位置，记录每步越过该断面的车辆
type Detector struct {
	name     string
	lane     entity.ILane
	position float64 // 断面在车道上的位置
}

// Record 一条过线记录
type Record struct {
	RunID     string  `bson:"run_id" json:"run_id"`
	Step      int32   `bson:"step" json:"step"`
	T         float64 `bson:"t" json:"t"`
	Detector  string  `bson:"detector" json:"detector"`
	VehicleID int32   `bson:"vehicle_id" json:"vehicle_id"`
	Class     string  `bson:"class" json:"class"`
	V         float64 `bson:"v" json:"v"`
}

func (d *Detector) String() string {
	return fmt.Sprintf("Detector{name=%s, lane=%d, position=%.1f}", d.name, d.lane.ID(), d.position)
}

// scan 扫描本步越过断面的车辆
// 说明：车道链表的移除是缓冲生效的，本步越线进入下一车道的车辆
// 仍在链表中，用运动区间判断是否跨过断面
func (d *Detector) scan(runID string, step int32, t float64) []Record {
	var out []Record
	for node := d.lane.Vehicles().First(); node != nil; node = node.Next() {
		v := node.Value
		lane, from, to := v.MotionThisStep()
		if lane != d.lane || from >= d.position || to < d.position {
			continue
		}
		out = append(out, Record{
			RunID:     runID,
			Step:      step,
			T:         t,
			Detector:  d.name,
			VehicleID: v.ID(),
			Class:     v.Class().String(),
			V:         v.V(),
		})
	}
	return out
}
