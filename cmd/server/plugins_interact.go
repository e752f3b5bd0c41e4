package main

// 注册交互插件
import (
	_ "github.com/switchcollectorpro/switchcollectorpro/addone/interact/platforms/h3c_s"
	_ "github.com/switchcollectorpro/switchcollectorpro/addone/interact/platforms/hp_v1910"
)
