package main

// 注册采集插件
import (
	_ "github.com/switchcollectorpro/switchcollectorpro/addone/collect/platforms/h3c_s"
	_ "github.com/switchcollectorpro/switchcollectorpro/addone/collect/platforms/hp_v1910"
)
